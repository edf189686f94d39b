package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"htmlfmt/internal/driver"
	"htmlfmt/internal/format"
)

func TestDiskCache_HitMiss(t *testing.T) {
	c, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := format.DefaultOptions()
	k1 := driver.CacheKey([]byte("<p>a</p>"), opts)
	k2 := driver.CacheKey([]byte("<p>b</p>"), opts)
	if k1 == k2 {
		t.Fatal("different content must hash differently")
	}

	if err := c.Put(k1, &driver.CachePayload{Path: "a.html", Output: []byte("<p>a</p>\n")}); err != nil {
		t.Fatal(err)
	}

	var got driver.CachePayload
	ok, err := c.Get(k2, &got)
	if err != nil || ok {
		t.Fatalf("expected miss on different key, ok=%v err=%v", ok, err)
	}
	ok, err = c.Get(k1, &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if string(got.Output) != "<p>a</p>\n" || got.Path != "a.html" {
		t.Errorf("payload = %+v", got)
	}
}

func TestCacheKey_Options(t *testing.T) {
	content := []byte("<p>x</p>")
	base := format.DefaultOptions()
	variants := []format.Options{
		{IndentWidth: 4, MaxLineLength: base.MaxLineLength, MaxAttributeLength: base.MaxAttributeLength},
		{IndentWidth: base.IndentWidth, UseTabs: true, MaxLineLength: base.MaxLineLength, MaxAttributeLength: base.MaxAttributeLength},
		{IndentWidth: base.IndentWidth, MaxLineLength: 120, MaxAttributeLength: base.MaxAttributeLength},
		{IndentWidth: base.IndentWidth, MaxLineLength: base.MaxLineLength, MaxAttributeLength: 10},
	}
	k := driver.CacheKey(content, base)
	for i, v := range variants {
		if driver.CacheKey(content, v) == k {
			t.Errorf("variant %d shares the default key", i)
		}
	}

	traced := base
	traced.NoTrace = !base.NoTrace
	if driver.CacheKey(content, traced) != k {
		t.Error("NoTrace does not affect output and must not affect the key")
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c, err := driver.OpenDiskCacheAt(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := driver.CacheKey([]byte("x"), format.DefaultOptions())
	if err := c.Put(key, &driver.CachePayload{Output: []byte("x")}); err != nil {
		t.Fatal(err)
	}

	var entry string
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && filepath.Ext(p) == ".mp" {
			entry = p
		}
		return nil
	})
	if entry == "" {
		t.Fatal("cache entry not written")
	}
	if err := os.WriteFile(entry, []byte{0xc1}, 0o644); err != nil {
		t.Fatal(err)
	}

	var got driver.CachePayload
	if ok, err := c.Get(key, &got); ok || err == nil {
		t.Errorf("corrupt entry: ok=%v err=%v", ok, err)
	}
}

func TestDiskCache_DropAll(t *testing.T) {
	c, err := driver.OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	key := driver.CacheKey([]byte("x"), format.DefaultOptions())
	if err := c.Put(key, &driver.CachePayload{Output: []byte("x")}); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	var got driver.CachePayload
	if ok, _ := c.Get(key, &got); ok {
		t.Error("entry survived DropAll")
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("cache dir must be recreated: %v", err)
	}
}

func TestNilDiskCache(t *testing.T) {
	var c *driver.DiskCache
	var got driver.CachePayload
	if ok, err := c.Get(driver.Digest{}, &got); ok || err != nil {
		t.Errorf("nil Get = %v, %v", ok, err)
	}
	if err := c.Put(driver.Digest{}, &got); err != nil {
		t.Errorf("nil Put = %v", err)
	}
}
