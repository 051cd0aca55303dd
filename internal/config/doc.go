// Package config loads the runtime configuration of hsmv.
//
// All settings come from the environment. A .env file in the working
// directory (or the file named by --env-file) is read first; variables that
// are already set in the process environment take precedence over it.
//
// Credentials are validated lazily per gateway so that read-only commands
// such as "relay list" do not require a relay provider account.
package config
