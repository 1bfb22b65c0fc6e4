/*
Package protocol is a library for building compatible Needham-Schroeder
key servers, peer daemons and clients.

protocol defines everything the three roles have to agree on bit for bit;
the role logic itself lives in the keyserver, daemon and client
subpackages, none of which touch the network or log anything.

Codes

This module defines the unified state and error code space. Every frame
starts with one of these codes, and the client reports exactly one of them
to its caller when an exchange terminates.

Types

This module defines the fixed 16-byte Identity, Key, Nonce and Block types
and the challenge transform shared by client and daemon.

Message

This module defines the frame layout, i.e. how many 16-byte fields follow
each code, together with constructors for every frame the roles send.

Envelope

This module implements the encrypted payloads: the ticket the key server
seals for the daemon, the grant it seals for the client, and the sealed
challenge nonce.

Keys

This module defines the KeyProvider and KeyStore interfaces through which
the roles reach the identity directory.
*/
package protocol
