// Package addons installs shell plugins: it runs the plugin script shipped
// in the configs repository and offers to install Oh My Zsh when missing.
package addons
