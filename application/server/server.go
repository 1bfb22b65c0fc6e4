package server

import (
	"net"

	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/SeppPenner/needham-schroeder/protocol/keyserver"
	"github.com/SeppPenner/needham-schroeder/storage/keystore"
	"github.com/SeppPenner/needham-schroeder/storage/kv"
	"github.com/SeppPenner/needham-schroeder/storage/kv/leveldbkv"
	"github.com/pion/transport/v3"
)

// A Directory is the key server's identity directory opened from the
// database named in its config.
type Directory struct {
	*keystore.KVStore
	db kv.DB
}

// OpenDirectory opens the identity directory of conf. It is used by the
// running server as well as by the register and list commands, which
// must not run while the server holds the database.
func OpenDirectory(conf *Config) (*Directory, error) {
	db, err := leveldbkv.OpenDB(conf.DirectoryPath)
	if err != nil {
		return nil, err
	}
	return &Directory{KVStore: keystore.NewKVStore(db), db: db}, nil
}

// Close closes the underlying database.
func (d *Directory) Close() error {
	return d.db.Close()
}

// A KeyServer represents the Needham-Schroeder key server.
// It wraps a keyserver.KeyServer with a network layer which
// handles requests/responses and their encoding/decoding.
type KeyServer struct {
	*application.ServerBase
	dir  *Directory
	core *keyserver.KeyServer
	addr *application.ServerAddress
}

// New creates a key server serving the directory of conf on nw.
func New(conf *Config, nw transport.Net) (*KeyServer, error) {
	dir, err := OpenDirectory(conf)
	if err != nil {
		return nil, err
	}
	sb := application.NewServerBase(conf.CommonConfig, "Listen", nw)
	return &KeyServer{
		ServerBase: sb,
		dir:        dir,
		core:       keyserver.New(dir),
		addr:       &application.ServerAddress{Address: conf.Address},
	}, nil
}

// Run starts serving key requests.
func (server *KeyServer) Run() error {
	ids, err := server.dir.Identities()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		server.Logger().Warn("The identity directory is empty")
	}
	return server.ListenAndHandle(server.addr, server.handle)
}

func (server *KeyServer) handle(from net.Addr, f *protocol.Frame) (*protocol.Frame, error) {
	res, err := server.core.HandleFrame(f)
	if err == nil {
		req, _ := f.KeyRequest()
		server.Logger().Info("Issued session key",
			"client", req.From.String(),
			"peer", req.To.String(),
			"address", from.String())
	}
	return res, err
}

// Shutdown stops the server and closes its directory.
func (server *KeyServer) Shutdown() error {
	err := server.ServerBase.Shutdown()
	if cerr := server.dir.Close(); err == nil {
		err = cerr
	}
	return err
}
