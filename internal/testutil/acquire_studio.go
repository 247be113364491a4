package testutil

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/andrebq/yogastudio/studio"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireStudio opens a studio database inside a temporary directory
// and runs loader (if not nil) before handing it to the caller.
func AcquireStudio(ctx context.Context, t TestLog, loader func(context.Context, *studio.Store) error) (*studio.Store, func()) {
	dir, err := ioutil.TempDir("", "yogastudio-tests")
	if err != nil {
		t.Fatal(err)
	}
	store, err := studio.Open(ctx, filepath.Join(dir, "studio.db"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	cleanup := func() {
		err := store.Close()
		if err != nil {
			t.Log("unable to close studio", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
	if loader != nil {
		err = loader(ctx, store)
		if err != nil {
			cleanup()
			t.Fatal(err)
		}
	}
	return store, cleanup
}
