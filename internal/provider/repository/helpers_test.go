package repository

import (
	"github.com/felixgeelhaar/debprep/internal/adapters/logging"
	"github.com/felixgeelhaar/debprep/internal/provider"
	"github.com/felixgeelhaar/debprep/internal/testutil/mocks"
)

func testDeps() provider.Deps {
	return provider.Deps{
		FS:       mocks.NewFileSystem(),
		Packages: mocks.NewPackageManager(),
		Platform: debian("bookworm"),
		Logger:   logging.NewNopLogger(),
	}
}
