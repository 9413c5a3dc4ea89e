package daemon

import (
	"os"
	"strings"

	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/storage"
)

// BootChanged reports whether the machine rebooted since the id at path
// was last stored, and stores the current id. A missing or unreadable
// file is treated as no reboot so the session is restored, not reset.
func BootChanged(prefs storage.Store, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logging.DebugLog("boot id unavailable", "path", path, logging.KeyError, err)
		return false, nil
	}
	current := strings.TrimSpace(string(data))
	if current == "" {
		return false, nil
	}

	stored := prefs.GetString(model.NSSystem, model.KeyBootID, "")
	if stored == current {
		return false, nil
	}
	if err := prefs.SetString(model.NSSystem, model.KeyBootID, current); err != nil {
		return true, err
	}
	return true, nil
}
