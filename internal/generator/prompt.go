package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kalambet/devfolio/internal/openai"
)

const systemPrompt = `You are an expert web designer. Generate HTML and CSS code that is professional, aesthetically pleasing, and user-friendly.`

const briefTemplate = `Create a professional, elegant, and responsive portfolio website for a developer.
The website should include a navigation bar, a header section with the user's name and a brief introduction,
an About Me section with the user's profile image and a description, a Projects section showcasing the user's work,
and a Contact section with a form. It should also include a footer with copyright information.
The design should be modern, with a clean layout, appealing visuals, and subtle animations.
Include the following information from the provided GitHub profile:
---
%s
`

// BuildPrompt returns the two chat messages for a profile: the fixed system
// role followed by the portfolio brief with the profile embedded as indented
// JSON. profile may be anything encoding/json accepts.
func BuildPrompt(profile any) ([]openai.Message, error) {
	data, err := encodeProfile(profile)
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}

	return []openai.Message{
		{Role: openai.RoleSystem, Content: systemPrompt},
		{Role: openai.RoleUser, Content: fmt.Sprintf(briefTemplate, data)},
	}, nil
}

// URLs and bios must reach the model as written, so &, < and > stay literal.
func encodeProfile(profile any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profile); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
