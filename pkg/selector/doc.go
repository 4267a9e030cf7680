// Package selector expands selector tokens embedded in command strings.
//
// A token has the form @key or @key[name=value,...] and must stand on its
// own, delimited by spaces or the ends of the command. Each token is
// resolved by the Provider registered under its key into zero or more
// replacement strings, and the command is expanded into the cartesian
// product of all replacements:
//
//	/tp @a @s    with a → [Alex, Sam], s → [Steve]
//	→ /tp Alex Steve
//	→ /tp Sam Steve
//
// If any token resolves to nothing, the whole expansion is abandoned and the
// invoker receives a single message. Nothing is dispatched in that case.
package selector
