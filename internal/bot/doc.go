// Package bot implements automated responders over the shared history log.
//
// A Bot is an ordinary chat subscriber whose OnRecord callback applies the
// dispatch contract every responder relies on, in this order:
//
//  1. self-filter: records whose nick or source matches the bot's own
//     identity are ignored, preventing reply loops
//  2. command-filter: records whose text begins with the reserved command
//     prefix are ignored; they are intended for other handlers
//  3. type-filter: only message-type records warrant a generated reply
//
// A reply is published through the same client every participant uses: a
// new independent append with its own ID and timestamp, never a special
// case of the log. A responder failure is caught at the subscriber boundary
// and logged; it can never crash or wedge the tailing loop.
package bot
