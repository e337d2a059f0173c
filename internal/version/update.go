package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// UpdateInfo describes whether a newer release exists upstream.
type UpdateInfo struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
}

const releasesURL = "https://api.github.com/repos/couchpilot/couchpilot/releases/latest"

// CheckForUpdate asks GitHub for the latest release and compares it to
// the running version.
func CheckForUpdate(ctx context.Context) (UpdateInfo, error) {
	info := UpdateInfo{CurrentVersion: Version}

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(ctx, "GET", releasesURL, nil)
	if err != nil {
		return info, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return info, fmt.Errorf("failed to check for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return info, fmt.Errorf("failed to check for updates: status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return info, fmt.Errorf("failed to parse update response: %w", err)
	}

	info.LatestVersion = strings.TrimPrefix(release.TagName, "v")
	info.UpdateAvailable = isNewerVersion(info.LatestVersion, info.CurrentVersion)
	return info, nil
}

// isNewerVersion compares dotted version strings part by part.
func isNewerVersion(latest, current string) bool {
	latestParts := strings.Split(latest, ".")
	currentParts := strings.Split(current, ".")

	for i := 0; i < len(latestParts) && i < len(currentParts); i++ {
		var latestNum, currentNum int
		fmt.Sscanf(latestParts[i], "%d", &latestNum)
		fmt.Sscanf(currentParts[i], "%d", &currentNum)

		if latestNum != currentNum {
			return latestNum > currentNum
		}
	}
	return len(latestParts) > len(currentParts)
}
