package debug

import (
	"log"
	"os"
)

// Debug levels
const (
	LevelOff     = 0 // No output
	LevelInfo    = 1 // Important info (transitions, calibration summary)
	LevelLive    = 2 // Live info (light switching, shots taken, cron changes)
	LevelVerbose = 3 // Verbose (settle polling, file moves, store writes)
	LevelTrace   = 4 // Trace (GPIO, command lines, very low level)
)

var (
	level  int
	logger *log.Logger
)

// Init initializes the debug system with a level (0-4).
// 0 = no output
// 1 = important info (transitions, calibration results)
// 2 = live info (light on/off, photos taken, cron entries)
// 3 = verbose (gain polling, filenames, store writes)
// 4 = trace (GPIO, shell commands, very low level)
func Init(debugLevel int) {
	level = debugLevel
	if level > LevelOff {
		logger = log.New(os.Stdout, "[biolapse] ", log.LstdFlags|log.Lmicroseconds)
	}
}

// Level returns the current debug level.
func Level() int {
	return level
}

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] "+format, args...)
	}
}

// Summary prints an important summary (level 1).
func Summary(title string) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("═══════════════════════════════════════")
		logger.Printf("  %s", title)
		logger.Printf("═══════════════════════════════════════")
	}
}

// Profile prints the frozen calibration profile (level 1).
func Profile(iso, shutterUs int, gainRed, gainBlue float64) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] Profile: iso=%d shutter=%dus awb=(%.3f, %.3f)", iso, shutterUs, gainRed, gainBlue)
	}
}

// Value prints a named value in formatted form (level 1).
func Value(name string, value interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO]   %s = %v", name, value)
	}
}

// --- Level 2 functions (Live): real-time info ---

// Live prints a level 2 message (live info).
func Live(format string, args ...interface{}) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] "+format, args...)
	}
}

// Light prints an illumination change (level 2).
func Light(on bool) {
	if level >= LevelLive && logger != nil {
		state := "OFF"
		if on {
			state = "ON"
		}
		logger.Printf("[LIVE] Illumination %s", state)
	}
}

// Shot prints a photo capture (level 2).
func Shot(filename string) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] Photo captured: %s", filename)
	}
}

// Cron prints a scheduler change (level 2).
func Cron(action, entry string) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] Cron %s: %s", action, entry)
	}
}

// --- Level 3 functions (Verbose): everything ---

// Verbose prints a level 3 message (verbose).
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] "+format, args...)
	}
}

// Gain prints one gain-settle poll reading (level 3).
func Gain(analog, digital float64) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] Gain poll: analog=%.3f digital=%.3f", analog, digital)
	}
}

// Section prints a section separator (level 3).
func Section(name string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		logger.Printf("  %s", name)
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	}
}

// Step prints a numbered step (level 3).
func Step(num int, description string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] Step %d: %s", num, description)
	}
}

// --- Level 4 functions (Trace): very low level ---

// Trace prints a level 4 message (trace).
func Trace(format string, args ...interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[TRACE] "+format, args...)
	}
}

// GPIO prints a GPIO operation (level 4).
func GPIO(operation string, pin int, value interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[GPIO] %s pin=%d value=%v", operation, pin, value)
	}
}

// Exec prints an external command invocation (level 4).
func Exec(name string, args []string) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[EXEC] %s %v", name, args)
	}
}

// --- General functions ---

// Error prints a debug error (level 1+).
func Error(err error) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[ERROR] %v", err)
	}
}
