// Package browser opens marketplace pages in the user's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// PageURL joins the web app base with a resource page, e.g. PageURL(base, "hotels", 3).
func PageURL(base, resource string, id int64) string {
	return strings.TrimRight(base, "/") + "/" + resource + "/" + strconv.FormatInt(id, 10)
}

// Open launches url with the platform opener and does not wait for it.
func Open(url string) error {
	name, args, err := opener(runtime.GOOS)
	if err != nil {
		return err
	}
	return exec.Command(name, append(args, url)...).Start()
}

func opener(goos string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", nil, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", nil, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}, nil
	default:
		return "", nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}
