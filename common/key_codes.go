package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87  // W key (ASCII)
	KeyA     = 65  // A key (ASCII)
	KeyS     = 83  // S key (ASCII)
	KeyD     = 68  // D key (ASCII)
	KeyG     = 71  // G key (ASCII)
	KeyI     = 73  // I key (ASCII)
	KeyU     = 85  // U key (ASCII)
	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)

	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	Key4 = 52 // 4 key (ASCII)
	Key5 = 53 // 5 key (ASCII)
	Key6 = 54 // 6 key (ASCII)
	Key7 = 55 // 7 key (ASCII)
	Key8 = 56 // 8 key (ASCII)
)

// DigitKey returns the 1..9 digit value of a key code, or 0 if the key is not a digit.
//
// Parameters:
//   - keyCode: the GLFW key code
//
// Returns:
//   - int: the digit value (1..9), or 0
func DigitKey(keyCode uint32) int {
	if keyCode >= Key1 && keyCode <= Key1+8 {
		return int(keyCode-Key1) + 1
	}
	return 0
}
