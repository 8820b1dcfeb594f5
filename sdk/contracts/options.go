package contracts

// RecorderOptions defines the configuration accepted by the Recorder
// constructor.
type RecorderOptions struct {
	Logger   Logger   // Logger for lifecycle and diagnostic events.
	LogLevel LogLevel // Level of logging to use.

	// PreferredSource, if non-nil and valid, is always used; the
	// Recorder never falls back to auto-selection while it remains
	// valid. If nil or invalid, the Recorder auto-selects the
	// highest-ranked source on every resubscribe.
	PreferredSource *PortHandle

	// OutputPath is the final destination .mid file; its parent
	// directory must already exist. The temp path used during save is
	// OutputPath + ".tmp".
	OutputPath string

	// ClientName is the name registered with the host sequencer
	// (snd_seq_set_client_name), surfaced to other clients and to this
	// process's own enumeration output.
	ClientName string
}

// Option is a function that modifies RecorderOptions.
type Option func(*RecorderOptions)

// WithLogger sets the logger for the Recorder.
func WithLogger(l Logger) Option {
	return func(opts *RecorderOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the Recorder.
func WithLogLevel(level LogLevel) Option {
	return func(opts *RecorderOptions) {
		opts.LogLevel = level
	}
}

// WithPreferredSource pins the Recorder to a specific source PortHandle.
// Omitting this option (or passing an invalid handle) leaves auto-selection
// enabled.
func WithPreferredSource(src PortHandle) Option {
	return func(opts *RecorderOptions) {
		opts.PreferredSource = &src
	}
}

// WithOutputPath sets the final destination path for the recorded SMF.
func WithOutputPath(path string) Option {
	return func(opts *RecorderOptions) {
		opts.OutputPath = path
	}
}

// WithClientName sets the name the Recorder registers with the host
// sequencer.
func WithClientName(name string) Option {
	return func(opts *RecorderOptions) {
		opts.ClientName = name
	}
}
