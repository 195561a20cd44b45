// Package host defines the window system contract the player paints into,
// and a headless implementation of it.
//
// A Window owns a message queue and a window procedure. Any goroutine may
// post messages; only the dispatch thread runs the procedure, so code in the
// procedure never races with other procedure invocations. Hooks are chained
// the classic way:
//
//	prev := w.SetProc(func(w host.Window, msg host.Message) int {
//	    if msg.Kind == host.MsgPaint {
//	        surface, _ := w.BeginPaint()
//	        draw(surface)
//	        w.EndPaint()
//	    }
//	    return prev(w, msg)
//	})
//	defer w.SetProc(prev)
//
// MemoryWindow keeps its paint surface in an *image.RGBA and is dispatched
// with Run or DispatchPending.
package host
