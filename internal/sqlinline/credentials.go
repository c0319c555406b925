package sqlinline

const QSelectProviderKey = `--sql b26c7f90-5e48-4d13-9a06-8f31b4d2e7a5
select api_key
from provider_credentials
where provider = $1::text
limit 1;
`

const QUpsertProviderKey = `--sql d58a3b14-0f72-4c69-b5e3-1c94a6f0d827
insert into provider_credentials (provider, api_key, updated_at)
values ($1::text, $2::text, now())
on conflict (provider) do update set
    api_key = excluded.api_key,
    updated_at = now();
`
