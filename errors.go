package dx7

import "errors"

// Structural decode failures. Out-of-range numeric fields are never an
// error — decoding clamps every numeric field silently — so these are the only
// conditions a caller needs to branch on.
var (
	ErrBadBankLength    = errors.New("dx7: bank data must be exactly 4104 bytes")
	ErrBadBankHeader    = errors.New("dx7: bank header does not match F0 43 00 09 20 00")
	ErrBadVoiceLength   = errors.New("dx7: voice data must be exactly 128 bytes")
	ErrBadOperatorIndex = errors.New("dx7: operator index must be in 0..5")
)
