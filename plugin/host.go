package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	goplugin "plugin"
	"strings"

	"github.com/bsundman/nodle"
)

// Plugin error kinds are the core's own sentinels (spec.md §7 "Plugin
// errors"); the Host reports through the same errors.Is-checkable values
// the scheduler uses for a panicking process() call, rather than minting a
// parallel set.
var (
	ErrLoadFailed          = nodle.ErrLoadFailed
	ErrIncompatibleVersion = nodle.ErrIncompatibleVersion
	ErrPanicIsolated       = nodle.ErrPanicIsolated
	ErrPluginInUse         = nodle.ErrPluginInUse
)

// sharedLibExt is the file extension the host platform's dynamic-library
// convention uses. Go's plugin package only supports linux and darwin;
// windows is not a supported discovery target (spec.md §6 "File extension
// selection follows the host platform's dynamic-library convention").
const sharedLibExt = ".so"

type loadedPlugin struct {
	path      string
	lib       *goplugin.Plugin
	handle    Handle
	info      Info
	destroy   DestroyPluginFunc
	typeIds   []string // namespaced type ids this plugin registered
	liveNodes int
}

// Host discovers, loads, and manages plugins, aggregating their node
// factories alongside built-in factories in one nodle.Registry (spec.md
// §4.2).
type Host struct {
	registry    *nodle.Registry
	coreVersion string

	loaded     []*loadedPlugin
	pluginOf   map[string]*loadedPlugin       // namespaced type id -> owning plugin
	nodeOwner  map[nodle.NodeId]*loadedPlugin // live node -> owning plugin

	debug bool
}

// NewHost creates a Host that namespaces plugin node types under
// "<plugin>.<node>" and registers them into registry. coreVersion is the
// host's own version string, compared against each plugin's
// CompatibleCoreVersion (spec.md §4.2 step 3, §6).
func NewHost(registry *nodle.Registry, coreVersion string) *Host {
	return &Host{
		registry:    registry,
		coreVersion: coreVersion,
		pluginOf:    make(map[string]*loadedPlugin),
		nodeOwner:   make(map[nodle.NodeId]*loadedPlugin),
	}
}

// SetDebug enables stderr tracing of load/unload decisions, mirroring the
// core's opt-in SetDebug convention.
func (h *Host) SetDebug(enabled bool) { h.debug = enabled }

func (h *Host) logf(format string, args ...any) {
	if h.debug {
		_, _ = fmt.Fprintf(os.Stderr, "[nodle/plugin] "+format+"\n", args...)
	}
}

// Attach subscribes the Host to store's GraphEvents so it can track which
// plugin-owned nodes are still alive, for the unload-in-use check.
func (h *Host) Attach(store *nodle.Store) {
	store.Subscribe(nodle.GraphSubscriberFunc(func(evt nodle.GraphEvent) {
		if evt.Kind == nodle.EventNodeRemoved {
			if owner, ok := h.nodeOwner[evt.NodeId]; ok {
				owner.liveNodes--
				delete(h.nodeOwner, evt.NodeId)
			}
		}
	}))
}

// DiscoveryRoots returns the user-scoped and local plugin directories, in
// scan order (spec.md §6 "a user-scoped directory... and a local directory
// relative to the process (./plugins/)").
func DiscoveryRoots(userDir string) []string {
	return []string{userDir, filepath.Join(".", "plugins")}
}

// Scan returns every shared-library file in dir matching the platform's
// dynamic-library extension. A missing or unreadable directory yields an
// empty result, not an error.
func Scan(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), sharedLibExt) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}

// LoadAll scans every root in order and loads every discovered library,
// logging (not failing) on any individual load error so one bad plugin
// cannot prevent the rest from loading.
func (h *Host) LoadAll(roots []string) {
	for _, root := range roots {
		for _, path := range Scan(root) {
			if err := h.Load(path); err != nil {
				h.logf("load %s failed: %v", path, err)
			}
		}
	}
}

// Load runs the full loading protocol for the shared library at path
// (spec.md §4.2 "Loading protocol"). A panic anywhere in CreatePlugin,
// OnLoad, or RegisterNodes isolates that plugin: its library is effectively
// abandoned (no handle is kept, no nodes registered) and other plugins are
// unaffected (spec.md §4.2 "Failure semantics"). Load does not call
// MenuStructure; Menu isolates panics there.
func (h *Host) Load(path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("nodle/plugin: load %s: %w: %v", path, ErrPanicIsolated, r)
		}
	}()

	lib, openErr := goplugin.Open(path)
	if openErr != nil {
		return fmt.Errorf("nodle/plugin: load %s: %w: %v", path, ErrLoadFailed, openErr)
	}

	createSym, lookErr := lib.Lookup(CreatePluginSymbol)
	if lookErr != nil {
		return fmt.Errorf("nodle/plugin: load %s: %w: missing %s", path, ErrLoadFailed, CreatePluginSymbol)
	}
	createFn, ok := createSym.(func() Handle)
	if !ok {
		return fmt.Errorf("nodle/plugin: load %s: %w: %s has wrong signature", path, ErrLoadFailed, CreatePluginSymbol)
	}

	var destroyFn DestroyPluginFunc
	if destroySym, err := lib.Lookup(DestroyPluginSymbol); err == nil {
		if fn, ok := destroySym.(func(Handle)); ok {
			destroyFn = fn
		}
	}

	handle := createFn()
	info := handle.Info()

	if !compatibleVersion(h.coreVersion, info.CompatibleCoreVersion) {
		return fmt.Errorf("nodle/plugin: load %s: %w: core %s vs plugin-compatible %s",
			path, ErrIncompatibleVersion, h.coreVersion, info.CompatibleCoreVersion)
	}

	if err := handle.OnLoad(); err != nil {
		return fmt.Errorf("nodle/plugin: load %s: %w: on_load: %v", path, ErrLoadFailed, err)
	}

	lp := &loadedPlugin{path: path, lib: lib, handle: handle, info: info, destroy: destroyFn}
	registrar := &namespacingRegistrar{prefix: info.Name, registry: h.registry, owner: lp}
	if err := handle.RegisterNodes(registrar); err != nil {
		return fmt.Errorf("nodle/plugin: load %s: %w: register_nodes: %v", path, ErrLoadFailed, err)
	}

	h.loaded = append(h.loaded, lp)
	for _, id := range lp.typeIds {
		h.pluginOf[id] = lp
	}
	h.logf("loaded %s (%s %s)", info.Name, info.Version, path)
	return nil
}

// compatibleVersion reports whether pluginVersion's major component matches
// hostVersion's (spec.md §4.2 step 3, §6 "same major").
func compatibleVersion(hostVersion, pluginVersion string) bool {
	return majorOf(hostVersion) == majorOf(pluginVersion)
}

func majorOf(v string) string {
	v = strings.TrimPrefix(v, "v")
	if i := strings.Index(v, "."); i >= 0 {
		return v[:i]
	}
	return v
}

// SpawnNode creates a node from typeId (built-in or namespaced plugin type)
// via the registry and places it at position. It does not record plugin
// ownership; call TrackOwnership once Store.AddNode has assigned the id.
func (h *Host) SpawnNode(typeId string, position nodle.Vec2) (*nodle.Node, error) {
	node, err := h.registry.Spawn(typeId)
	if err != nil {
		return nil, err
	}
	node.Position = position
	return node, nil
}

// TrackOwnership records that node belongs to the plugin that registered
// typeId, for the unload-in-use check. Call this after Store.AddNode
// assigns node its real id.
func (h *Host) TrackOwnership(typeId string, id nodle.NodeId) {
	if owner, ok := h.pluginOf[typeId]; ok {
		owner.liveNodes++
		h.nodeOwner[id] = owner
	}
}

// Unload runs the unloading protocol for one plugin (spec.md §4.2
// "Unloading protocol"): forbidden while any node it owns still exists.
func (h *Host) Unload(path string) error {
	for i, lp := range h.loaded {
		if lp.path != path {
			continue
		}
		if lp.liveNodes > 0 {
			return fmt.Errorf("nodle/plugin: unload %s: %w: %d live nodes", path, ErrPluginInUse, lp.liveNodes)
		}
		h.unloadOne(lp)
		h.loaded = append(h.loaded[:i], h.loaded[i+1:]...)
		return nil
	}
	return nil
}

// UnloadAll unloads every plugin in reverse load order (spec.md §4.2
// "Unloading protocol"). It neither deletes plugin-owned nodes nor checks
// for live ones; the caller, which holds the Store, removes them first.
func (h *Host) UnloadAll() {
	for i := len(h.loaded) - 1; i >= 0; i-- {
		h.unloadOne(h.loaded[i])
	}
	h.loaded = nil
}

func (h *Host) unloadOne(lp *loadedPlugin) {
	if err := lp.handle.OnUnload(); err != nil {
		h.logf("on_unload %s: %v", lp.info.Name, err)
	}
	if lp.destroy != nil {
		func() {
			defer func() { _ = recover() }()
			lp.destroy(lp.handle)
		}()
	}
	for _, id := range lp.typeIds {
		delete(h.pluginOf, id)
	}
	h.logf("unloaded %s", lp.info.Name)
}

// Menu merges every loaded plugin's MenuStructure into one map keyed by the
// categories the plugins return. A plugin whose MenuStructure panics
// contributes nothing.
func (h *Host) Menu() map[string][]string {
	menu := make(map[string][]string)
	for _, lp := range h.loaded {
		func() {
			defer func() { _ = recover() }()
			for cat, items := range lp.handle.MenuStructure() {
				menu[cat] = append(menu[cat], items...)
			}
		}()
	}
	return menu
}

// namespacingRegistrar wraps a *nodle.Registry, prefixing every registered
// type id with "<plugin>." and remembering which ids belong to owner
// (spec.md §4.2 step 5).
type namespacingRegistrar struct {
	prefix   string
	registry *nodle.Registry
	owner    *loadedPlugin
}

func (r *namespacingRegistrar) Register(factory Factory) error {
	meta := factory.Metadata()
	namespaced := meta.TypeId
	if !strings.HasPrefix(namespaced, r.prefix+".") {
		namespaced = r.prefix + "." + namespaced
	}
	meta.TypeId = namespaced

	adapter := nodle.FactoryFunc{
		Meta: meta,
		NewFunc: func() nodle.NodeProcessor {
			return factory.CreateNode(nodle.Vec2{})
		},
	}
	if err := r.registry.Register(adapter); err != nil {
		return err
	}
	r.owner.typeIds = append(r.owner.typeIds, namespaced)
	return nil
}
