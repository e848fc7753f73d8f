package api

import (
	"context"
	"net/url"
	"strconv"

	"krist-explorer/listing"
	"krist-explorer/models"
)

// CheckName reports whether a name can still be purchased
func (c *Client) CheckName(ctx context.Context, name string) (bool, error) {
	var res struct {
		Available bool `json:"available"`
	}
	if err := c.Get(ctx, "names/check/"+url.PathEscape(name), nil, &res); err != nil {
		return false, err
	}
	return res.Available, nil
}

// GetName fetches one name
func (c *Client) GetName(ctx context.Context, name string) (*models.Name, error) {
	var res struct {
		Name models.Name `json:"name"`
	}
	if err := c.Get(ctx, "names/"+url.PathEscape(name), nil, &res); err != nil {
		return nil, err
	}
	return &res.Name, nil
}

// GetTransaction fetches one transaction by id
func (c *Client) GetTransaction(ctx context.Context, id int) (*models.Transaction, error) {
	var res struct {
		Transaction models.Transaction `json:"transaction"`
	}
	if err := c.Get(ctx, "transactions/"+strconv.Itoa(id), nil, &res); err != nil {
		return nil, err
	}
	return &res.Transaction, nil
}

// GetAddress fetches one address
func (c *Client) GetAddress(ctx context.Context, address string, fetchNames bool) (*models.Address, error) {
	params := url.Values{}
	if fetchNames {
		params.Set("fetchNames", "true")
	}
	var res struct {
		Address models.Address `json:"address"`
	}
	if err := c.Get(ctx, "addresses/"+url.PathEscape(address), params, &res); err != nil {
		return nil, err
	}
	return &res.Address, nil
}

// GetMOTD fetches the message of the day and network flags
func (c *Client) GetMOTD(ctx context.Context) (*models.MOTD, error) {
	var motd models.MOTD
	if err := c.Get(ctx, "motd", nil, &motd); err != nil {
		return nil, err
	}
	return &motd, nil
}

// Capabilities derives the listing capability flags from the network MOTD
func Capabilities(motd *models.MOTD) listing.Capability {
	var caps listing.Capability
	if motd != nil && motd.MiningEnabled {
		caps |= listing.CapMining
	}
	return caps
}
