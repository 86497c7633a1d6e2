package rpc

import (
	"github.com/usereml/lightecho-stellar-oracle/internal/rpc/rpc_handlers"
)

// registerAllMethods registers every contract entry point and the server methods.
// This function is called by NewServer to set up the complete method registry
func (s *Server) registerAllMethods() {
	c := rpc_handlers.Contract{Host: s.host}

	// Server Information Methods
	s.registry.Register("ping", &rpc_handlers.PingMethod{})
	s.registry.Register("server_info", &rpc_handlers.ServerInfoMethod{
		Host:    s.host,
		Version: s.info.Version,
		Backend: s.info.Backend,
		Started: s.started,
	})
	s.registry.Register("account_sequence", &rpc_handlers.AccountSequenceMethod{Host: s.host})

	// Config Methods
	s.registry.Register("initialize", &rpc_handlers.InitializeMethod{Contract: c})
	s.registry.Register("base", &rpc_handlers.BaseMethod{Contract: c})
	s.registry.Register("admin", &rpc_handlers.AdminMethod{Contract: c})
	s.registry.Register("read_admin", &rpc_handlers.AdminMethod{Contract: c})
	s.registry.Register("decimals", &rpc_handlers.DecimalsMethod{Contract: c})
	s.registry.Register("resolution", &rpc_handlers.ResolutionMethod{Contract: c})
	s.registry.Register("write_admin", &rpc_handlers.WriteAdminMethod{Contract: c})
	s.registry.Register("write_resolution", &rpc_handlers.WriteResolutionMethod{Contract: c})

	// Price Store Methods
	s.registry.Register("assets", &rpc_handlers.AssetsMethod{Contract: c})
	s.registry.Register("sources", &rpc_handlers.SourcesMethod{Contract: c})

	// Query Methods
	s.registry.Register("prices", &rpc_handlers.PricesMethod{Contract: c})
	s.registry.Register("prices_by_source", &rpc_handlers.PricesMethod{Contract: c, BySource: true})
	s.registry.Register("lastprices", &rpc_handlers.LastPricesMethod{Contract: c})
	s.registry.Register("lastprices_by_source", &rpc_handlers.LastPricesMethod{Contract: c, BySource: true})
	s.registry.Register("lastprice", &rpc_handlers.LastPriceMethod{Contract: c})
	s.registry.Register("lastprice_by_source", &rpc_handlers.LastPriceMethod{Contract: c, BySource: true})
	s.registry.Register("price", &rpc_handlers.PriceMethod{Contract: c})
	s.registry.Register("price_by_source", &rpc_handlers.PriceMethod{Contract: c, BySource: true})
	s.registry.Register("lastprices_by_source_and_assets", &rpc_handlers.LastPricesBySourceAndAssetsMethod{Contract: c})

	// Mutation Methods
	s.registry.Register("add_price", &rpc_handlers.AddPriceMethod{Contract: c})
	s.registry.Register("add_prices", &rpc_handlers.AddPricesMethod{Contract: c})
	s.registry.Register("remove_prices", &rpc_handlers.RemovePricesMethod{Contract: c})
}
