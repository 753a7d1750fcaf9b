package game

import (
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/savanna/config"
)

// musicPlayer loops one track per phase and switches on day/night edges.
// Missing files leave the phase silent.
type musicPlayer struct {
	day, night       rl.Music
	hasDay, hasNight bool
	current          *rl.Music
	device           bool
}

func newMusicPlayer(cfg config.AudioConfig) *musicPlayer {
	m := &musicPlayer{}
	if cfg.DayMusic == "" && cfg.NightMusic == "" {
		return m
	}

	rl.InitAudioDevice()
	m.device = true
	m.day, m.hasDay = loadTrack(cfg.DayMusic, cfg.Volume)
	m.night, m.hasNight = loadTrack(cfg.NightMusic, cfg.Volume)
	return m
}

func loadTrack(path string, volume float64) (rl.Music, bool) {
	if path == "" {
		return rl.Music{}, false
	}
	if _, err := os.Stat(path); err != nil {
		slog.Warn("music unavailable", "path", path, "error", err)
		return rl.Music{}, false
	}
	music := rl.LoadMusicStream(path)
	music.Looping = true
	rl.SetMusicVolume(music, float32(volume))
	return music, true
}

// PhaseChanged stops the current track and starts the one for the new phase.
func (m *musicPlayer) PhaseChanged(isDay bool) {
	if m.current != nil {
		rl.StopMusicStream(*m.current)
		m.current = nil
	}
	switch {
	case isDay && m.hasDay:
		m.current = &m.day
	case !isDay && m.hasNight:
		m.current = &m.night
	default:
		return
	}
	rl.PlayMusicStream(*m.current)
}

// Update refills the audio buffer. Call once per frame.
func (m *musicPlayer) Update() {
	if m.current != nil {
		rl.UpdateMusicStream(*m.current)
	}
}

func (m *musicPlayer) Unload() {
	if !m.device {
		return
	}
	if m.hasDay {
		rl.UnloadMusicStream(m.day)
	}
	if m.hasNight {
		rl.UnloadMusicStream(m.night)
	}
	rl.CloseAudioDevice()
}
