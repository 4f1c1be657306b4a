// Package scraper compiles and runs Lua scraper scripts.
package scraper

import (
	"bytes"
	"crypto/sha256"
	"sync"

	"github.com/anisan-cli/anifeed/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// compiled prototypes keyed by script content, so an updated script is recompiled.
var bytecodeCache sync.Map

// PreCompileAndLoad runs the script at scriptPath in L, compiling it at most once per content.
func PreCompileAndLoad(L *lua.LState, scriptPath string) error {
	content, err := filesystem.API().ReadFile(scriptPath)
	if err != nil {
		return err
	}

	proto, err := Compile(scriptPath, content)
	if err != nil {
		return err
	}

	L.Push(L.NewFunctionFromProto(proto))
	return L.PCall(0, lua.MultRet, nil)
}

// Compile returns the prototype of content, from the cache when possible.
func Compile(name string, content []byte) (*lua.FunctionProto, error) {
	sum := sha256.Sum256(content)

	if cached, ok := bytecodeCache.Load(sum); ok {
		return cached.(*lua.FunctionProto), nil
	}

	chunk, err := parse.Parse(bytes.NewReader(content), name)
	if err != nil {
		return nil, err
	}

	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, err
	}

	bytecodeCache.Store(sum, proto)
	return proto, nil
}
