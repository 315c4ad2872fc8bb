package main

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// promptKey asks for the root issue key on an interactive terminal.
func promptKey() (string, error) {
	var key string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Root issue key").
				Description("The tree is built from the links of this issue").
				Placeholder("PROJ-123").
				Value(&key).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("key cannot be empty")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", usagef("no issue key given")
		}
		return "", err
	}
	return strings.TrimSpace(key), nil
}
