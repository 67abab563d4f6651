package workspace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aura/internal/logger"
)

// Store 以逻辑文档名访问工作区内的 JSON 文档与 JSONL 日志。
// 读取端遵循"缺失/损坏一律降级为空值"的约定，绝不向调用方抛错。
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("workspace root cannot be empty")
	}
	for _, sub := range []string{"state", "logs"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("prepare workspace dir failed: %w", err)
		}
	}
	return &Store{root: root}, nil
}

// Root 返回工作区根目录。
func (s *Store) Root() string { return s.root }

// DocPath 返回逻辑文档对应的物理路径。
func (s *Store) DocPath(name string) string {
	return filepath.Join(s.root, "state", name+".json")
}

// LogPath 返回行式日志对应的物理路径。
func (s *Store) LogPath(name string) string {
	return filepath.Join(s.root, "logs", name+".jsonl")
}

// LoadDoc 读取文档为通用 map。缺失或损坏时返回空 map。
func (s *Store) LoadDoc(name string) map[string]any {
	out := map[string]any{}
	raw, err := os.ReadFile(s.DocPath(name))
	if err != nil {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warnf("document %s corrupt, using empty value: %v", name, err)
		return map[string]any{}
	}
	return out
}

// LoadInto 将文档解码进目标结构。缺失返回 false，损坏记录告警并返回 false。
func (s *Store) LoadInto(name string, v any) bool {
	raw, err := os.ReadFile(s.DocPath(name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logger.Warnf("document %s corrupt: %v", name, err)
		return false
	}
	return true
}

// RawDoc 返回文档原始字节，缺失时返回 nil。
func (s *Store) RawDoc(name string) []byte {
	raw, err := os.ReadFile(s.DocPath(name))
	if err != nil {
		return nil
	}
	return raw
}

// Exists 判断文档是否存在。
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.DocPath(name))
	return err == nil
}

// SaveDoc 整体覆盖写入文档（临时文件 + rename）。
func (s *Store) SaveDoc(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document %s failed: %w", name, err)
	}
	return s.writeFile(s.DocPath(name), raw)
}

// SaveRawDoc 写入已序列化的文档体（用于 legacy 整体覆盖路径）。
func (s *Store) SaveRawDoc(name string, raw []byte) error {
	if !json.Valid(raw) {
		return fmt.Errorf("document %s body is not valid json", name)
	}
	return s.writeFile(s.DocPath(name), raw)
}

func (s *Store) writeFile(path string, raw []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write document failed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace document failed: %w", err)
	}
	return nil
}

// AppendLine 向行式日志追加一条 JSON 记录。
func (s *Store) AppendLine(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode log entry failed: %w", err)
	}
	f, err := os.OpenFile(s.LogPath(name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log %s failed: %w", name, err)
	}
	defer f.Close()
	if _, err := f.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("append log %s failed: %w", name, err)
	}
	return nil
}

// ReadLines 读取全部日志行。损坏的行被跳过。
func (s *Store) ReadLines(name string) []map[string]any {
	f, err := os.Open(s.LogPath(name))
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []map[string]any
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry := map[string]any{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			logger.Warnf("log %s skipping corrupt line: %v", name, err)
			continue
		}
		out = append(out, entry)
	}
	return out
}

// TailLines 返回最近的 n 条日志，顺序保持文件内顺序。
func (s *Store) TailLines(name string, n int) []map[string]any {
	lines := s.ReadLines(name)
	if n <= 0 || len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

// WriteLines 整体重写行式日志（用于 proposal 状态迁移）。
func (s *Store) WriteLines(name string, entries []map[string]any) error {
	var b strings.Builder
	for _, entry := range entries {
		raw, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode log entry failed: %w", err)
		}
		b.Write(raw)
		b.WriteByte('\n')
	}
	return s.writeFile(s.LogPath(name), []byte(b.String()))
}

// ListDir 列出工作区子目录下的文件名（非递归，排序后返回）。
func (s *Store) ListDir(sub string) []string {
	entries, err := os.ReadDir(filepath.Join(s.root, sub))
	if err != nil {
		return nil
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		out = append(out, entry.Name())
	}
	sort.Strings(out)
	return out
}
