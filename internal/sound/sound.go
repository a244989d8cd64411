//go:build !ci

// Package sound 终端客户端的提示音
package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const sampleRate = beep.SampleRate(44100)

// Manager 按提示名播放 assets/sounds 下的音效
type Manager struct {
	dir string

	mu      sync.RWMutex
	buffers map[Cue]*beep.Buffer
	enabled bool
}

// NewManager 创建音效管理器，dir 为空时使用 assets/sounds
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = DefaultDir
	}
	return &Manager{
		dir:     dir,
		buffers: make(map[Cue]*beep.Buffer),
	}
}

// Init 初始化扬声器并加载音效；没有音效目录不算错误
func (m *Manager) Init() error {
	// Init speaker with smaller buffer for lower latency
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	if err := m.load(); err != nil {
		return err
	}

	m.mu.Lock()
	m.enabled = true
	m.mu.Unlock()
	return nil
}

// load loads all sound files from the sound directory
func (m *Manager) load() error {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".mp3" && ext != ".wav" {
			continue
		}

		buffer, err := decode(filepath.Join(m.dir, name), ext)
		if err != nil {
			// Continue loading other files even if one fails
			continue
		}
		m.mu.Lock()
		m.buffers[Cue(strings.TrimSuffix(name, filepath.Ext(name)))] = buffer
		m.mu.Unlock()
	}
	return nil
}

// decode 读入一个音效文件并统一为 44.1kHz 立体声
func decode(path, ext string) (*beep.Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = streamer.Close() }()

	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buffer := beep.NewBuffer(beep.Format{
		SampleRate:  sampleRate,
		NumChannels: 2,
		Precision:   4,
	})
	buffer.Append(resampled)
	return buffer, nil
}

// Loaded 是否加载了该提示音
func (m *Manager) Loaded(cue Cue) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.buffers[cue]
	return ok
}

// Play 播放提示音，未启用或不存在时静默
func (m *Manager) Play(cue Cue) {
	m.mu.RLock()
	buffer, ok := m.buffers[cue]
	enabled := m.enabled
	m.mu.RUnlock()
	if !enabled || !ok {
		return
	}
	speaker.Play(buffer.Streamer(0, buffer.Len()))
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}
