package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/stackwm/internal/keys"
)

type grabKey struct {
	mods uint16
	code xproto.Keycode
}

// grabKeys grabs every configured combination on the root window for each
// keycode that produces its keysym.
func (c *Connection) grabKeys() {
	for _, combo := range c.opts.Keys {
		codes := keybind.StrToKeycodes(c.XUtil, combo.Key)
		if len(codes) == 0 {
			c.logger.Warn("no keycode for key, binding ignored", "key", combo.String())
			continue
		}
		mods := uint16(combo.Mods)
		for _, code := range codes {
			keybind.Grab(c.XUtil, c.Root, mods, code)
			c.grabs[grabKey{mods: mods, code: code}] = combo
		}
		c.logger.Debug("grabbed key", "key", combo.String(), "keycodes", len(codes))
	}
}

// regrabKeys refreshes the keyboard maps after a MappingNotify and grabs
// the configured keys again.
func (c *Connection) regrabKeys() {
	keyMap, modMap := keybind.MapsGet(c.XUtil)
	keybind.KeyMapSet(c.XUtil, keyMap)
	keybind.ModMapSet(c.XUtil, modMap)

	for k := range c.grabs {
		keybind.Ungrab(c.XUtil, c.Root, k.mods, k.code)
	}
	clear(c.grabs)
	configureIgnoreMods(c.XUtil)
	c.grabKeys()
}

// lookupKey maps a KeyPress state and keycode to the grabbed combination.
func (c *Connection) lookupKey(state uint16, code xproto.Keycode) (keys.Combo, bool) {
	mods, kc := keybind.DeduceKeyInfo(state, code)
	combo, ok := c.grabs[grabKey{mods: mods, code: kc}]
	return combo, ok
}

// configureIgnoreMods makes grabs and lookups ignore CapsLock, NumLock and
// ScrollLock in any combination.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")
	xevent.IgnoreMods = ignoreMasks(xproto.ModMaskLock, numLock, scrollLock)
}

// ignoreMasks returns every combination of the given lock masks, including
// the empty one. Zero and repeated masks are skipped.
func ignoreMasks(locks ...uint16) []uint16 {
	var base []uint16
	for _, m := range locks {
		if m == 0 {
			continue
		}
		dup := false
		for _, b := range base {
			if b == m {
				dup = true
				break
			}
		}
		if !dup {
			base = append(base, m)
		}
	}

	seen := map[uint16]bool{0: true}
	ignore := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		if !seen[mask] {
			seen[mask] = true
			ignore = append(ignore, mask)
		}
	}
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
