package config

const (
	defaultScratchDir          = "~/.local/share/boostd/scratch"
	defaultStateDir            = "~/.local/share/boostd/state"
	defaultLogDir              = "~/.local/share/boostd/logs"
	defaultWindowStart         = "01:15"
	defaultWindowEnd           = "06:15"
	defaultBoostScript         = "processor_wrapper.py"
	defaultVSPipeBinary        = "vspipe"
	defaultFFmpegBinary        = "ffmpeg"
	defaultExiftoolBinary      = "exiftool"
	defaultDownloadTimeout     = 600
	defaultWatermarkText       = "ARCHIVE PROOF | INTERNAL"
	defaultWatermarkOpacity    = 0.15
	defaultGateRecheckInterval = 60
	defaultIdlePollInterval    = 300
	defaultErrorCooldown       = 60
	defaultSuccessPacing       = 5
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultDebugItemLimit      = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
		},
		Window: Window{
			Start: defaultWindowStart,
			End:   defaultWindowEnd,
		},
		Boost: Boost{
			Script:          defaultBoostScript,
			VSPipeBinary:    defaultVSPipeBinary,
			FFmpegBinary:    defaultFFmpegBinary,
			ExiftoolBinary:  defaultExiftoolBinary,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Watermark: Watermark{
			Enabled: true,
			Text:    defaultWatermarkText,
			Opacity: defaultWatermarkOpacity,
		},
		Workflow: Workflow{
			GateRecheckInterval: defaultGateRecheckInterval,
			IdlePollInterval:    defaultIdlePollInterval,
			ErrorCooldown:       defaultErrorCooldown,
			SuccessPacing:       defaultSuccessPacing,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Debug: Debug{
			ItemLimit: defaultDebugItemLimit,
		},
	}
}
