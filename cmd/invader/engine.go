package main

import (
	"fmt"
	"strings"

	"github.com/PumbleCorp/invader/hek"
)

// parseEngine maps the --engine flag's friendly names onto a
// hek.CacheFileEngine, the way the teacher's dump command maps flag names
// onto which PE directories to print.
func parseEngine(name string) (hek.CacheFileEngine, error) {
	switch strings.ToLower(name) {
	case "xbox":
		return hek.CacheFileXbox, nil
	case "demo":
		return hek.CacheFileDemo, nil
	case "retail", "pc":
		return hek.CacheFileRetail, nil
	case "custom", "custom-edition", "ce":
		return hek.CacheFileCustomEdition, nil
	case "dark-circlet", "native", "":
		return hek.CacheFileDarkCirclet, nil
	default:
		return 0, fmt.Errorf("unknown engine %q (want xbox, demo, retail, custom-edition, or dark-circlet)", name)
	}
}
