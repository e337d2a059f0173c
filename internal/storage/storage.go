// Package storage reports disk usage for the mounted filesystems, so
// the bot can answer "is there room for another season" from chat.
package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"
)

// Mount is the usage of one mounted filesystem.
type Mount struct {
	Path  string
	Used  uint64
	Total uint64
}

func (m Mount) percent() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Used) / float64(m.Total) * 100
}

// Report returns a chat-ready summary of disk usage across physical
// partitions. Pseudo filesystems (tmpfs, overlay layers) are excluded
// by asking only for physical devices.
func Report() (string, error) {
	mounts, err := collect()
	if err != nil {
		return "", err
	}
	return format(mounts), nil
}

func collect() ([]Mount, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	seen := make(map[string]bool)
	var mounts []Mount
	for _, p := range partitions {
		// The same device can appear under multiple mountpoints
		// (bind mounts); report each device once.
		if seen[p.Device] {
			continue
		}
		usage, err := disk.Usage(p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		seen[p.Device] = true
		mounts = append(mounts, Mount{
			Path:  p.Mountpoint,
			Used:  usage.Used,
			Total: usage.Total,
		})
	}
	sort.Slice(mounts, func(i, j int) bool { return mounts[i].Path < mounts[j].Path })
	return mounts, nil
}

func format(mounts []Mount) string {
	if len(mounts) == 0 {
		return "No mounted filesystems found"
	}

	var b strings.Builder
	b.WriteString("💾 Storage:\n\n")
	for _, m := range mounts {
		fmt.Fprintf(&b, "%s\n   %s / %s (%.0f%% used)\n",
			m.Path, humanize.IBytes(m.Used), humanize.IBytes(m.Total), m.percent())
	}
	return strings.TrimRight(b.String(), "\n")
}
