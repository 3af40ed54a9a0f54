package bot

// No global bot registry.
//
// spec.md §9 documents that the source codebase lets a user-linked bot
// register itself into a process-wide singleton before main runs. That
// registry is deliberately not carried over here (REDESIGN FLAG, spec.md
// §9): a bot is always an explicit Descriptor value passed to
// pipeline.Run, constructed after main starts. There is no package-level
// mutable registry in this file to mutate, and no init() function in this
// package — both facts are load-bearing, not incidental, so this file
// exists to say so rather than to define anything.
