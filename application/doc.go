/*
Package application is a library for building the executables of the
Needham-Schroeder key distribution system: the key server, the peer
daemon and the client.

Config

AppConfig and CommonConfig describe the configuration files of the
executables. The only supported encoding is TOML; relative paths in a
config file are resolved against the directory of that file.

Logger

This module implements a generic logging system that can be used by any
of the executables.

ServerBase

This module provides the datagram server shared by the key server and
the daemon: it receives frames, decodes them, passes them to the role's
handler and sends the replies.
*/
package application
