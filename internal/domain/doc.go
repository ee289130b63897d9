// Package domain contains the core business entities of the application:
// tasks, tags, and users. Entities validate themselves on construction and
// carry no persistence or transport concerns.
package domain
