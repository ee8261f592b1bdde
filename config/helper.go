package config

// Load 加载并绑定指定节的配置到结构体 T
// section 为空时绑定整个配置树
func Load[T any](cfg Configuration, section string) (T, error) {
	var t T
	err := cfg.Bind(section, &t)
	return t, err
}

// MustLoad 同 Load，绑定失败时 panic（适用于启动期的必需配置）
func MustLoad[T any](cfg Configuration, section string) T {
	t, err := Load[T](cfg, section)
	if err != nil {
		panic("config: failed to bind section '" + section + "': " + err.Error())
	}
	return t
}
