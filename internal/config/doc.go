// Package config defines the application configuration structure and loading
// logic shared by the server and the two consumer services.
package config
