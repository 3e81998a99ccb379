package rapidoc

import (
	"io/fs"
)

func schemas() fs.FS {
	sub, err := fs.Sub(docs, "docs")
	if err != nil {
		// the embedded tree is fixed at build time
		panic(err)
	}
	return sub
}
