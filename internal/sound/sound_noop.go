//go:build ci

package sound

// Manager CI 环境没有音频设备，所有操作为空
type Manager struct{}

func NewManager(string) *Manager {
	return &Manager{}
}

func (m *Manager) Init() error {
	return nil
}

func (m *Manager) Loaded(Cue) bool {
	return false
}

func (m *Manager) Play(Cue) {}

func (m *Manager) Close() {}
