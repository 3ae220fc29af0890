package deploy

import (
	"context"

	"github.com/hashleap/diamond/facets/crosschain"
	"github.com/hashleap/diamond/facets/spotpayment"
	"github.com/hashleap/diamond/facets/subscription"
)

// Facet names used in Deployment.Facets
const (
	SubscriptionFacet = "SubscriptionFacet"
	SpotPaymentFacet  = "SpotPaymentFacet"
	CrossChainFacet   = "CrossChainPaymentFacet"
)

// DeployPayments attaches the subscription, spot payment and cross-chain
// payment facets, initializing the subscription facet with cfg
func (d *Deployer) DeployPayments(ctx context.Context, dep *Deployment, cfg subscription.Config) error {
	calldata, err := cfg.Calldata()
	if err != nil {
		return err
	}
	if _, err := d.AddFacet(ctx, dep, SubscriptionFacet, subscription.NewFacet(), FacetOptions{
		InitCode:     subscription.NewInitializer(),
		InitCalldata: calldata,
	}); err != nil {
		return err
	}
	if _, err := d.AddFacet(ctx, dep, SpotPaymentFacet, spotpayment.NewFacet(), FacetOptions{}); err != nil {
		return err
	}
	_, err = d.AddFacet(ctx, dep, CrossChainFacet, crosschain.NewFacet(), FacetOptions{})
	return err
}
