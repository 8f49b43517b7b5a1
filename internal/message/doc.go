// Package message defines the chat record schema and its JSONL wire codec.
//
// A record travels as one self-contained JSON object per line. The codec is
// strict on required fields (type, nick, ts, id) and permissive on everything
// else: unknown keys are preserved across a decode/encode round trip so that
// records written by newer producers survive older consumers.
package message
