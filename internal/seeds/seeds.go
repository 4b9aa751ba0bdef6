// Package seeds reads world seed lists for batch searches.
package seeds

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	getter "github.com/hashicorp/go-getter"
)

var (
	// ErrEmpty is returned when a seed list holds no seeds.
	ErrEmpty = errors.New("seed list is empty")

	// ErrInvalidSeed is returned for a seed that is not a base-10 int64.
	ErrInvalidSeed = errors.New("invalid seed")
)

// FromString parses a world seed. Only integers that fit in an int64 are
// accepted.
func FromString(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q: must be an integer in the int64 range", ErrInvalidSeed, s)
	}
	return v, nil
}

// Parse reads one seed per line. Blank lines and text after '#' are ignored.
func Parse(r io.Reader) ([]int64, error) {
	var out []int64
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seed, err := FromString(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, seed)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read seed list: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// Fetch downloads a seed list from any go-getter source (local path, http,
// git, s3, ...) and parses it. Relative paths resolve against the working
// directory.
func Fetch(ctx context.Context, src string) ([]int64, error) {
	tmp, err := os.MkdirTemp("", "fortress-seeds-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	pwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}

	dst := filepath.Join(tmp, "seeds.txt")
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return nil, fmt.Errorf("fetch seed list %s: %w", src, err)
	}

	f, err := os.Open(dst)
	if err != nil {
		return nil, fmt.Errorf("open seed list: %w", err)
	}
	defer f.Close()

	seeds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("seed list %s: %w", src, err)
	}
	return seeds, nil
}
