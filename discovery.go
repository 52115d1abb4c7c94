// FILE: nativeconfig/discovery.go
package nativeconfig

import (
	"os"
	"path/filepath"
	"strings"
)

// DiscoverPath picks a config file location for a FileBackend. An explicit
// path in the APPNAME_CONFIG environment variable wins; otherwise the file
// goes under the user's config directory:
//
//	DiscoverPath("myapp", "settings.json")
//	// MYAPP_CONFIG if set, else ~/.config/myapp/settings.json on Linux
//
// No file needs to exist at the returned path.
func DiscoverPath(appName, fileName string) (string, error) {
	envVar := strings.ToUpper(strings.ReplaceAll(appName, "-", "_")) + "_CONFIG"
	if path := os.Getenv(envVar); path != "" {
		return path, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", initErrorf("cannot locate user config directory: %v", err)
	}
	return filepath.Join(dir, appName, fileName), nil
}
