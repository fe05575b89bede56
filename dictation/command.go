package dictation

// Command is a user request produced by the tray menu or a hotkey and
// consumed by Service.Run.
type Command int

const (
	CommandTogglePause Command = iota + 1
	CommandSwitchLanguage
	CommandToggleAutostart
	CommandQuit
)

func (c Command) String() string {
	switch c {
	case CommandTogglePause:
		return "toggle_pause"
	case CommandSwitchLanguage:
		return "switch_language"
	case CommandToggleAutostart:
		return "toggle_autostart"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// LanguageSwitcher flips the transcription language and returns the new one.
type LanguageSwitcher interface {
	ToggleLanguage() (string, error)
}

// Autostarter registers the program to start at login.
type Autostarter interface {
	Enabled() (bool, error)
	SetEnabled(enabled bool) error
}
