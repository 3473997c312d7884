// Package msgs provides the L1 envelope and generic replies.
package msgs

// L1 messages travel between an L1 controller (e.g. kl200d driving a
// sensor) and L2 clients (shell, monitor). Every message is wrapped in
// a Typed envelope carrying a type id and, for commands, a sequence
// number correlating the reply.
//
// Producer: L1 controller (events, replies), L2 client (commands)
// Consumer: L2 client, L1 controller
