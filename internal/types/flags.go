package types

// GlobalFlags holds flags shared by every CLI command
type GlobalFlags struct {
	Config  string
	LogFile string
	Quiet   bool
	Verbose bool
	Debug   bool
	DryRun  bool
}
