package recorder

import (
	"github.com/keysound/pianorecd/internal/logger"
	"github.com/keysound/pianorecd/sdk/contracts"
)

// applyDefaultOptions sets default values for RecorderOptions if not
// explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify RecorderOptions.
//
// Returns:
//   - contracts.RecorderOptions: A structure containing the finalized recorder options with defaults applied.
func applyDefaultOptions(opts ...contracts.Option) contracts.RecorderOptions {
	options := &contracts.RecorderOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Set defaults if options are not provided
	if options.Logger == nil {
		options.Logger = logger.NewLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.ClientName == "" {
		options.ClientName = "piano-recorder"
	}
	if options.OutputPath == "" {
		options.OutputPath = "recording.mid"
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options
}
