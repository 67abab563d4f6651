package workspace

// Context 把工作区定位与文档访问显式传递给 dispatcher、handler 与插件，
// 取代进程级单例。
type Context struct {
	Root         string
	Store        *Store
	PluginsDir   string
	WebDir       string
	MediaDir     string
	TemplateFile string
	BridgeDir    string
}
