package config

import "sort"

const NoPlayer = "none"

type PlayerPreset struct {
	Binary      string
	Args        []string
	Description string
}

var Players = map[string]*PlayerPreset{
	"vlc": {
		Binary:      "cvlc",
		Args:        []string{"--play-and-exit", "--quiet"},
		Description: "VLC without interface",
	},
	"mpv": {
		Binary:      "mpv",
		Args:        []string{"--no-video", "--really-quiet"},
		Description: "mpv, audio only",
	},
	"ffplay": {
		Binary:      "ffplay",
		Args:        []string{"-nodisp", "-autoexit", "-loglevel", "quiet"},
		Description: "ffmpeg's ffplay without a window",
	},
	"paplay": {
		Binary:      "paplay",
		Description: "PulseAudio sample player (wav/flac/ogg)",
	},
	NoPlayer: {
		Description: "no audio",
	},
}

func GetPreset(name string) *PlayerPreset {
	p, ok := Players[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Players))
	for name := range Players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
