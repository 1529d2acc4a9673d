//go:build darwin

package clip

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #include <stdlib.h>
// #import <Cocoa/Cocoa.h>
//
// static char** xclipy_file_paths(int *count) {
//     NSPasteboard *pb = [NSPasteboard generalPasteboard];
//     NSDictionary *opts = @{ NSPasteboardURLReadingFileURLsOnlyKey: @YES };
//     NSArray *urls = [pb readObjectsForClasses:@[[NSURL class]] options:opts];
//     if (!urls || [urls count] == 0) { *count = 0; return NULL; }
//     *count = (int)[urls count];
//     char **result = (char **)malloc(*count * sizeof(char *));
//     for (int i = 0; i < *count; i++) {
//         result[i] = strdup([[(NSURL *)urls[i] path] UTF8String]);
//     }
//     return result;
// }
//
// static void xclipy_free_paths(char **paths, int count) {
//     for (int i = 0; i < count; i++) free(paths[i]);
//     free(paths);
// }
//
// static int xclipy_write_files(char **paths, int count) {
//     NSMutableArray *urls = [NSMutableArray arrayWithCapacity:count];
//     for (int i = 0; i < count; i++) {
//         NSString *p = [NSString stringWithUTF8String:paths[i]];
//         [urls addObject:[NSURL fileURLWithPath:p]];
//     }
//     NSPasteboard *pb = [NSPasteboard generalPasteboard];
//     [pb clearContents];
//     return [pb writeObjects:urls] ? 1 : 0;
// }
import "C"

import (
	"errors"
	"log/slog"
	"unsafe"

	"golang.design/x/clipboard"
)

type darwinBackend struct{}

// New returns the macOS clipboard backend.
// clipboard.Init is called here rather than in init() so that CLI sub-commands
// that never construct a Backend don't log spurious warnings.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard init failed, running headless", "err", err)
		return headlessBackend{}
	}
	return darwinBackend{}
}

func (darwinBackend) Name() string { return "macOS NSPasteboard" }

func (darwinBackend) ReadText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (darwinBackend) ReadFiles() ([]string, error) {
	var n C.int
	raw := C.xclipy_file_paths(&n)
	if raw == nil || n == 0 {
		return nil, nil
	}
	defer C.xclipy_free_paths(raw, n)

	cnt := int(n)
	cArr := unsafe.Slice(raw, cnt)
	paths := make([]string, 0, cnt)
	for _, cp := range cArr {
		paths = append(paths, C.GoString(cp))
	}
	return paths, nil
}

func (darwinBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (darwinBackend) WriteFiles(paths []string) error {
	if len(paths) == 0 {
		return errors.New("empty file list")
	}
	cPaths := make([]*C.char, len(paths))
	for i, p := range paths {
		cPaths[i] = C.CString(p)
	}
	defer func() {
		for _, cp := range cPaths {
			C.free(unsafe.Pointer(cp))
		}
	}()
	// cgo forbids passing a Go pointer to Go pointers; copy into C memory.
	arr := (**C.char)(C.malloc(C.size_t(len(cPaths)) * C.size_t(unsafe.Sizeof(uintptr(0)))))
	defer C.free(unsafe.Pointer(arr))
	copy(unsafe.Slice(arr, len(cPaths)), cPaths)

	if C.xclipy_write_files(arr, C.int(len(paths))) == 0 {
		return errors.New("NSPasteboard writeObjects failed")
	}
	return nil
}

func (darwinBackend) Close() {}
