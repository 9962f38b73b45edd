// Package commands defines the merchant CLI.
//
// Commands
//
//   - serve      Run the merchant runtime and its local API
//   - register   Create an account directly in the user store
//
// The root command loads configuration and initialises the logger before
// any subcommand runs.
package commands
