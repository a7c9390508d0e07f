package locator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	dir := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func touch(t *testing.T, parts ...string) string {
	t.Helper()
	path := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o755))
	return path
}

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

// precedenceTree builds a tree where override, upward and downward all succeed.
func precedenceTree(t *testing.T) (root, override, work string) {
	root = t.TempDir()
	override = mkdir(t, root, "custom-engines")
	mkdir(t, root, "motores")
	work = mkdir(t, root, "project", "work")
	mkdir(t, work, "nested", "Motores")
	return root, override, work
}

func TestResolvePrecedence(t *testing.T) {
	root, override, work := precedenceTree(t)

	t.Run("override wins", func(t *testing.T) {
		l := New(nil, DefaultStrategies(OverrideStrategy{
			Env:    EnvMotores,
			Getenv: envOf(map[string]string{EnvMotores: override}),
		}, work, "")...)
		dir, err := l.FindMotores()
		require.NoError(t, err)
		assert.Equal(t, override, dir)
	})

	t.Run("env beats config fallback", func(t *testing.T) {
		l := New(nil, DefaultStrategies(OverrideStrategy{
			Env:      EnvMotores,
			Fallback: filepath.Join(root, "motores"),
			Getenv:   envOf(map[string]string{EnvMotores: "  " + override + "  "}),
		}, work, "")...)
		dir, err := l.FindMotores()
		require.NoError(t, err)
		assert.Equal(t, override, dir)
	})

	t.Run("override that is not a directory falls through to upward", func(t *testing.T) {
		file := touch(t, root, "not-a-dir")
		l := New(nil, DefaultStrategies(OverrideStrategy{
			Env:    EnvMotores,
			Getenv: envOf(map[string]string{EnvMotores: file}),
		}, work, "")...)
		dir, err := l.FindMotores()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "motores"), dir)
	})

	t.Run("upward beats downward", func(t *testing.T) {
		l := New(nil, DefaultStrategies(OverrideStrategy{Getenv: envOf(nil)}, work, "")...)
		dir, err := l.FindMotores()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "motores"), dir)
	})

	t.Run("downward when nothing above", func(t *testing.T) {
		l := New(nil, DownwardStrategy{Root: work, Depth: 3})
		dir, err := l.FindMotores()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(work, "nested", "Motores"), dir)
	})
}

func TestUpwardStrategyDepth(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "motores")

	seven := mkdir(t, root, "a", "b", "c", "d", "e", "f", "g")
	dir, ok := UpwardStrategy{Root: seven, Depth: 8}.Find()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "motores"), dir)

	eight := mkdir(t, seven, "h")
	_, ok = UpwardStrategy{Root: eight, Depth: 8}.Find()
	assert.False(t, ok)
}

func TestUpwardStrategyMissingRoot(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "motores")

	// The nested product directory need not exist; its ancestors are still searched.
	dir, ok := UpwardStrategy{Root: filepath.Join(root, NestedProductDir), Depth: 6}.Find()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "motores"), dir)
}

func TestDownwardStrategyDepth(t *testing.T) {
	root := t.TempDir()
	deep := mkdir(t, root, "one", "two", "three", "MOTORES")

	_, ok := DownwardStrategy{Root: root, Depth: 3}.Find()
	assert.False(t, ok, "depth 4 must not be reached")

	dir, ok := DownwardStrategy{Root: root, Depth: 4}.Find()
	require.True(t, ok)
	assert.Equal(t, deep, dir)
}

func TestDownwardStrategyIgnoresFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a", "motores")
	dir := mkdir(t, root, "b", "motores")

	found, ok := DownwardStrategy{Root: root, Depth: 3}.Find()
	require.True(t, ok)
	assert.Equal(t, dir, found)
}

func TestFindMotoresNotFound(t *testing.T) {
	l := New(nil, OverrideStrategy{Getenv: envOf(nil)}, DownwardStrategy{Root: t.TempDir(), Depth: 3})
	_, err := l.FindMotores()
	assert.ErrorIs(t, err, ErrEngineNotFound)
}

func TestDescribe(t *testing.T) {
	t.Run("binary preferred", func(t *testing.T) {
		motores := t.TempDir()
		bin := touch(t, motores, EngineName, EngineName+binarySuffix())
		script := touch(t, motores, EngineName, EngineName+".py")

		desc, err := Describe(motores)
		require.NoError(t, err)
		assert.True(t, desc.UseBinary)
		assert.Equal(t, bin, desc.Entry())
		assert.Equal(t, script, desc.Script)
		assert.Equal(t, filepath.Join(motores, EngineName), desc.Dir)
	})

	t.Run("script fallback", func(t *testing.T) {
		motores := t.TempDir()
		script := touch(t, motores, EngineName, EngineName+".py")

		desc, err := Describe(motores)
		require.NoError(t, err)
		assert.False(t, desc.UseBinary)
		assert.Equal(t, script, desc.Entry())
	})

	t.Run("neither present", func(t *testing.T) {
		motores := t.TempDir()
		mkdir(t, motores, EngineName)

		_, err := Describe(motores)
		assert.ErrorIs(t, err, ErrEngineMissing)
	})
}

func TestResolve(t *testing.T) {
	motores := mkdir(t, t.TempDir(), "motores")
	touch(t, motores, EngineName, EngineName+".py")

	l := New(nil, OverrideStrategy{Env: EnvMotores, Getenv: envOf(map[string]string{EnvMotores: motores})})
	desc, err := l.Resolve()
	require.NoError(t, err)
	assert.Equal(t, motores, desc.MotoresDir)
}

func TestDefaultStrategiesOrder(t *testing.T) {
	strategies := DefaultStrategies(OverrideStrategy{}, "/work", "/prog")
	var names []string
	for _, s := range strategies {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{
		"override",
		"upward:/work",
		"upward:" + filepath.Join("/work", NestedProductDir),
		"upward:/prog",
		"upward:" + filepath.Join("/prog", NestedProductDir),
		"downward:/work",
	}, names)

	assert.Len(t, DefaultStrategies(OverrideStrategy{}, "/work", ""), 4)
}
