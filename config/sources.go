package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"gopkg.in/yaml.v3"
)

// WatchableSource 支持变更监听的配置源
// StartWatch 在后台监听变更，每次变更调用一次 onChange；重复调用无效果
type WatchableSource interface {
	ConfigurationSource
	StartWatch(ctx context.Context, onChange func()) error
	StopWatch()
}

// JsonFileSource JSON 文件配置源
type JsonFileSource struct {
	Path     string
	Optional bool
	watcher  fileWatcher
}

func (s *JsonFileSource) Name() string {
	return fmt.Sprintf("JsonFile(%s)", s.Path)
}

func (s *JsonFileSource) Load() (map[string]any, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if s.Optional && os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return result, nil
}

func (s *JsonFileSource) StartWatch(ctx context.Context, onChange func()) error {
	return s.watcher.start(ctx, s.Path, onChange)
}

func (s *JsonFileSource) StopWatch() {
	s.watcher.stop()
}

// YamlFileSource YAML 文件配置源
type YamlFileSource struct {
	Path     string
	Optional bool
	watcher  fileWatcher
}

func (s *YamlFileSource) Name() string {
	return fmt.Sprintf("YamlFile(%s)", s.Path)
}

func (s *YamlFileSource) Load() (map[string]any, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if s.Optional && os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, err
	}

	var result map[string]any
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return result, nil
}

func (s *YamlFileSource) StartWatch(ctx context.Context, onChange func()) error {
	return s.watcher.start(ctx, s.Path, onChange)
}

func (s *YamlFileSource) StopWatch() {
	s.watcher.stop()
}

// fileWatcher 轮询文件修改时间，发现变化时触发回调
type fileWatcher struct {
	cancel context.CancelFunc
	mu     sync.Mutex
}

func (w *fileWatcher) start(ctx context.Context, path string, onChange func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	var lastMod time.Time
	if info, err := os.Stat(path); err == nil {
		lastMod = info.ModTime()
	}

	go func() {
		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue
				}
				if mod := info.ModTime(); mod != lastMod {
					lastMod = mod
					onChange()
				}
			}
		}
	}()

	return nil
}

func (w *fileWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

// EnvironmentVariableSource 环境变量配置源
type EnvironmentVariableSource struct {
	Prefix string
}

func (s *EnvironmentVariableSource) Name() string {
	return fmt.Sprintf("EnvironmentVariables(%s)", s.Prefix)
}

func (s *EnvironmentVariableSource) Load() (map[string]any, error) {
	result := make(map[string]any)

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key, value := parts[0], parts[1]

		if s.Prefix != "" {
			if !strings.HasPrefix(key, s.Prefix) {
				continue
			}
			key = strings.TrimPrefix(key, s.Prefix)
		}

		// 小写并以 _ 作为层级分隔，与文件配置的键风格一致
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "_", ":")
		setNestedValue(result, key, value)
	}

	return result, nil
}

// InMemorySource 内存配置源
type InMemorySource struct {
	Data map[string]any
}

func (s *InMemorySource) Name() string {
	return "InMemory"
}

func (s *InMemorySource) Load() (map[string]any, error) {
	result := make(map[string]any, len(s.Data))
	mergeMaps(result, s.Data)
	return result, nil
}

// setNestedValue 按 "a:b:c" 路径写入嵌套值，字符串尝试转为数字或布尔
func setNestedValue(data map[string]any, path string, value any) {
	parts := strings.Split(path, ":")
	current := data

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if _, exists := current[part]; !exists {
			current[part] = make(map[string]any)
		}
		if m, ok := current[part].(map[string]any); ok {
			current = m
		} else {
			return
		}
	}

	if strValue, ok := value.(string); ok {
		if intValue, err := strconv.Atoi(strValue); err == nil {
			value = intValue
		} else if floatValue, err := strconv.ParseFloat(strValue, 64); err == nil {
			value = floatValue
		} else if boolValue, err := strconv.ParseBool(strValue); err == nil {
			value = boolValue
		}
	}

	current[parts[len(parts)-1]] = value
}

// EtcdOptions etcd 配置选项
type EtcdOptions struct {
	Endpoints   []string      // etcd 服务器地址列表
	Username    string        // 用户名（可选）
	Password    string        // 密码（可选）
	Prefix      string        // 键前缀（可选）
	Timeout     time.Duration // 单次读取超时时间（默认 5 秒）
	DialTimeout time.Duration // 拨号超时时间（默认 5 秒）
}

// EtcdSource etcd 配置源
// Load 每次建立短连接读取；StartWatch 维持长连接监听前缀变更
type EtcdSource struct {
	Options EtcdOptions

	mu          sync.Mutex
	watchClient *clientv3.Client
	watchCancel context.CancelFunc
}

// NewEtcdSource 创建 etcd 配置源并补全默认超时
func NewEtcdSource(opts EtcdOptions) *EtcdSource {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return &EtcdSource{Options: opts}
}

func (s *EtcdSource) Name() string {
	return fmt.Sprintf("Etcd(%v)", s.Options.Endpoints)
}

func (s *EtcdSource) newClient() (*clientv3.Client, error) {
	return clientv3.New(clientv3.Config{
		Endpoints:   s.Options.Endpoints,
		Username:    s.Options.Username,
		Password:    s.Options.Password,
		DialTimeout: s.Options.DialTimeout,
	})
}

func (s *EtcdSource) prefix() string {
	if s.Options.Prefix == "" {
		return "/"
	}
	return s.Options.Prefix
}

func (s *EtcdSource) Load() (map[string]any, error) {
	cli, err := s.newClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.Options.Timeout)
	defer cancel()

	resp, err := cli.Get(ctx, s.prefix(), clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to get config from etcd: %w", err)
	}

	result := make(map[string]any)
	for _, kv := range resp.Kvs {
		key := string(kv.Key)
		value := string(kv.Value)

		if s.Options.Prefix != "" {
			key = strings.TrimPrefix(key, s.Options.Prefix)
		}
		key = strings.TrimPrefix(key, "/")
		if key == "" {
			continue
		}

		// etcd 的路径分隔符 / 映射为配置层级分隔符 :
		key = strings.ReplaceAll(key, "/", ":")
		setNestedValue(result, key, decodeEtcdValue(value))
	}

	return result, nil
}

// decodeEtcdValue 值依次尝试按 JSON、YAML 解析，失败则按原始字符串处理
func decodeEtcdValue(value string) any {
	var jsonValue any
	if err := json.Unmarshal([]byte(value), &jsonValue); err == nil {
		return jsonValue
	}

	var yamlValue any
	if err := yaml.Unmarshal([]byte(value), &yamlValue); err == nil {
		return yamlValue
	}

	return value
}

func (s *EtcdSource) StartWatch(ctx context.Context, onChange func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchClient != nil {
		return nil
	}

	cli, err := s.newClient()
	if err != nil {
		return fmt.Errorf("failed to create etcd watch client: %w", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	s.watchClient = cli
	s.watchCancel = cancel

	watchCh := cli.Watch(watchCtx, s.prefix(), clientv3.WithPrefix())
	go func() {
		for resp := range watchCh {
			if resp.Err() != nil {
				continue
			}
			if len(resp.Events) > 0 {
				onChange()
			}
		}
	}()

	return nil
}

func (s *EtcdSource) StopWatch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watchClient != nil {
		s.watchClient.Close()
		s.watchClient = nil
	}
}
