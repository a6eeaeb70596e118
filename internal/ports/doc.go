// Package ports declares what internal/app needs from the outside world.
//
// The controller and run loop only see these interfaces; internal/adapters
// binds them to kardianos/service, gofrs/flock, zerolog and the file system.
//
//   - [EventQueue], [EventPoster]: the event source pumped by the run loop
//   - [Platform], [ServiceHost]: handshake, daemonize and service management
//   - [ErrorReporter]: last-resort message delivery
//   - [StatusRepository], [InstanceLock]: state shared with other processes
//   - [Plugin]: components living for one run of the loop
//   - [Logger]: structured logging
package ports
