// Package above embeds a web rendering engine in a native desktop
// window and bridges page script to host Go functions.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	above/               Root package with the App facade
//	├── adapter/         Engine adapter: bootstrap, message loop, call protocol
//	├── bridge/          Wire protocol: envelopes, routing, the page shim
//	├── engine/          Engine contract: runtime, environment, controller, page
//	├── gojaengine/      In-process engine backend built on goja
//	├── window/          Virtual desktop, windows, and the UI message queue
//	├── devtools/        Terminal debug console for live adapters
//	└── errors/          Structured error types for diagnostics
//
// # Quick Start
//
// Create an app, bind a host function, and run a page:
//
//	app, err := above.New(above.Config{
//	    AppName: "demo",
//	    Title:   "Demo",
//	    Width:   800,
//	    Height:  600,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Close()
//
//	app.BindFunc("host.greet", func(args []byte) (any, error) {
//	    return "Hello from Go!", nil
//	})
//
//	if err := app.Run("index.html"); err != nil {
//	    log.Fatal(err)
//	}
//
// Page script reaches the bound function through the injected shim:
//
//	webview.invoke("host.greet").then((msg) => console.log(msg));
//
// # Threading
//
// New and Run must be called from the same goroutine; Run pins it to an
// OS thread and blocks until Quit. From other goroutines use Dispatch,
// Post, and Quit only. See the adapter package documentation for the
// full threading rules.
package above
