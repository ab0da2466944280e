//go:build !linux

package flatfile

import "os"

func adviseSequential(*os.File) {}
