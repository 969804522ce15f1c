// Package clockface holds the clock state: a wall-clock Reading, its six
// display Digits, and the Face widget that owns the on/off palette, the
// digit layout and the digits currently shown.
//
// Digits are ordered hour tens, hour ones, minute tens, minute ones, second
// tens, second ones. Readings are always 24-hour.
package clockface
