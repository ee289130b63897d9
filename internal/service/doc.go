// Package service contains the application services that sit between the
// HTTP layer and the stores: task CRUD with lifecycle event publishing,
// registration and login, and the background reminder scanner.
package service
