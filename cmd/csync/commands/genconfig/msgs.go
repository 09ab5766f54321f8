package genconfig

// Message constants
const (
	MsgShort   = "Print the effective configuration as TOML"
	MsgLong    = "Output the effective configuration (defaults, config file and environment\noverrides merged) to stdout, or write it to the user config file with -w."
	MsgExample = `  csync gen-config           # Output to stdout
  csync gen-config -w        # Write to $XDG_CONFIG_HOME/csync/config.toml`
	MsgWritten    = "Wrote %s\n"
	MsgFlagWrite  = "Write config to the user config file instead of stdout"
	MsgFileExists = "%s already exists"
	MsgHintExists = "remove it first or edit it directly"
)
