package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/google/shlex"
)

// runScript feeds each line of r, split shell-style, to exec. Blank lines
// and # comments are skipped. The first failure stops the script.
func runScript(r io.Reader, exec func(args []string) error) error {
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := shlex.Split(line)
		if err != nil {
			return fmt.Errorf("line %d: %v", n, err)
		}
		if len(args) == 0 {
			continue
		}
		if err := exec(args); err != nil {
			return fmt.Errorf("line %d: %s: %w", n, args[0], err)
		}
	}
	return sc.Err()
}
