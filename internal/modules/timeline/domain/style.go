package domain

// Style tells the presentation layer how to render a value.
type Style string

const (
	StyleUnset    Style = "unset"
	StyleRecorded Style = "recorded"
	StyleManual   Style = "manual"
	StyleError    Style = "error"
)
