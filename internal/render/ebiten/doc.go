// Package ebiten implements the render interfaces with Ebiten, which runs
// both as a desktop window and in the browser (GOOS=js GOARCH=wasm).
package ebiten
