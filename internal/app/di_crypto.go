package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
	cryptoRepository "github.com/allisson/privmetrics/internal/crypto/repository"
	cryptoService "github.com/allisson/privmetrics/internal/crypto/service"
	cryptoUseCase "github.com/allisson/privmetrics/internal/crypto/usecase"
)

// KMSService returns the KMS service used to open master key keepers.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// AEADManager returns the AEAD encryption service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyManager returns the key wrapping service.
func (c *Container) KeyManager() cryptoService.KeyManager {
	c.keyManagerInit.Do(func() {
		c.keyManager = cryptoService.NewKeyManager(c.AEADManager())
	})
	return c.keyManager
}

// KeysetRepository returns the keyset repository for the configured database
// driver.
func (c *Container) KeysetRepository() (cryptoUseCase.KeysetRepository, error) {
	c.keysetRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["keysetRepo"] = fmt.Errorf("failed to get database for keyset repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.keysetRepo = cryptoRepository.NewPostgreSQLKeysetRepository(db)
		case "mysql":
			c.keysetRepo = cryptoRepository.NewMySQLKeysetRepository(db)
		default:
			c.initErrors["keysetRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["keysetRepo"]; exists {
		return nil, err
	}
	return c.keysetRepo, nil
}

// KeysetUseCase returns the keyset lifecycle use case.
func (c *Container) KeysetUseCase() (cryptoUseCase.KeysetUseCase, error) {
	c.keysetUCInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["keysetUseCase"] = err
			return
		}

		keysetRepo, err := c.KeysetRepository()
		if err != nil {
			c.initErrors["keysetUseCase"] = err
			return
		}

		c.keysetUC = cryptoUseCase.NewKeysetUseCase(txManager, keysetRepo, c.KeyManager())
	})
	if err, exists := c.initErrors["keysetUseCase"]; exists {
		return nil, err
	}
	return c.keysetUC, nil
}

// MasterKey loads the master key from the environment, unwrapping it through
// the configured KMS when a key URI is set. The caller owns the returned key
// and must Close it after use.
func (c *Container) MasterKey(ctx context.Context) (*cryptoDomain.MasterKey, error) {
	var keeper cryptoDomain.KMSKeeper
	if c.config.KMSKeyURI != "" {
		k, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		keeper = k
		defer func() {
			_ = keeper.Close()
		}()
	}

	masterKey, err := cryptoDomain.LoadMasterKey(ctx, keeper)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	return masterKey, nil
}

// KeysetChain unwraps the stored keysets into an in-memory chain. The master
// key is only held for the duration of the unwrap. The chain is closed during
// container shutdown.
func (c *Container) KeysetChain(ctx context.Context) (*cryptoDomain.KeysetChain, error) {
	c.keysetChainInit.Do(func() {
		keysetUC, err := c.KeysetUseCase()
		if err != nil {
			c.initErrors["keysetChain"] = err
			return
		}

		masterKey, err := c.MasterKey(ctx)
		if err != nil {
			c.initErrors["keysetChain"] = err
			return
		}
		defer masterKey.Close()

		chain, err := keysetUC.Unwrap(ctx, masterKey)
		if err != nil {
			c.initErrors["keysetChain"] = fmt.Errorf("failed to unwrap keyset chain: %w", err)
			return
		}
		c.keysetChain = chain
	})
	if err, exists := c.initErrors["keysetChain"]; exists {
		return nil, err
	}
	return c.keysetChain, nil
}
