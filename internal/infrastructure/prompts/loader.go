package prompts

import (
	_ "embed"
)

//go:embed system.txt
var SystemPrompt string

//go:embed field.txt
var FieldPrompt string
