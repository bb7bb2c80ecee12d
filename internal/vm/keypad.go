package vm

import "fmt"

type Key uint8

const (
	Key0 = Key(iota)
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

func (k Key) String() string {
	return fmt.Sprintf("%X", uint8(k)&0xF)
}

// KeyState is the pressed state of every key for one frame.
type KeyState [KeyCount]bool

// Keypad holds the current key state and the state of the previous frame,
// which is what edge detection compares against.
type Keypad struct {
	current  KeyState
	previous KeyState
}

// Snapshot copies the current state into the previous-frame buffer. Hosts
// call it once per frame, before writing the new state.
func (k *Keypad) Snapshot() {
	k.previous = k.current
}

func (k *Keypad) Set(key Key, pressed bool) {
	k.current[key&0xF] = pressed
}

func (k *Keypad) SetAll(state KeyState) {
	k.current = state
}

func (k *Keypad) State() KeyState {
	return k.current
}

func (k *Keypad) Pressed(key Key) bool {
	return k.current[key&0xF]
}

// Released reports a falling edge: pressed last frame, up now.
func (k *Keypad) Released(key Key) bool {
	return k.previous[key&0xF] && !k.current[key&0xF]
}

// firstReleased returns the lowest key with a falling edge.
func (k *Keypad) firstReleased() (Key, bool) {
	for i := range k.current {
		if k.Released(Key(i)) {
			return Key(i), true
		}
	}
	return 0, false
}
