// Package client keeps a logical session alive on top of heartbeat
// connections.
//
// A Client owns at most one heartbeat.Conn at a time. When that connection
// fails fatally (missed heartbeats or a lost transport) the client
// publishes connection:lost once, waits a doubling delay and dials again
// with the recovery token the server issued in connection:ready. The first
// message received on a live connection resets the delay.
//
// Inbound envelopes are translated into domain events and published on the
// bus under their envelope type, timestamped with the sender's clock:
//
//	bus := events.NewBus()
//	c := client.New(dialer, loop,
//	    client.WithBus(bus),
//	    client.WithAddressPolicy(client.DefaultAddressPolicy{
//	        Base:      "wss://play.example.com",
//	        Namespace: "versus",
//	    }),
//	)
//	bus.On(events.TypeReady, onReady)
//	loop.Post(func() { c.Init("") })
//
// Like heartbeat.Conn, a Client must only be used from its scheduler loop.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package client
