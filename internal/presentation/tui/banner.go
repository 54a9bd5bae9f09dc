package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner with the running version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Forest gradient (green to amber)
	s1 := termenv.String(`    _         _`).Foreground(p.Color("#4ade80"))
	s2 := termenv.String(`   / \   _ __| |__   ___  _ __`).Foreground(p.Color("#86efac"))
	s3 := termenv.String(`  / _ \ | '__| '_ \ / _ \| '__|`).Foreground(p.Color("#bef264"))
	s4 := termenv.String(` / ___ \| |  | |_) | (_) | |`).Foreground(p.Color("#fde047"))
	s5 := termenv.String(`/_/   \_\_|  |_.__/ \___/|_|`).Foreground(p.Color("#fbbf24"))
	v := termenv.String(fmt.Sprintf("  branching conversations %s", version)).Faint()

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(v)
	fmt.Println()
}
