package sqlinline

const QInsertAsset = `--sql 0b5d9f36-8e12-4c74-a3b0-6f41d27e8c95
insert into assets (id, project_id, job_id, kind, storage_key, mime, bytes, width, height, duration_seconds, segment_index, metadata, created_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::bigint, $7::int, $8::int, $9::double precision, $10::int, coalesce($11::jsonb, '{}'::jsonb), now());
`

const QSelectAssetByID = `--sql a38e6c02-4f97-4d58-b1e6-2c80d5a9f317
select a.id, a.project_id, a.job_id, a.kind, a.storage_key, a.mime, a.bytes, a.width, a.height,
       a.duration_seconds, a.segment_index, a.metadata, a.created_at, p.device_id
from assets a
join projects p on p.id = a.project_id
where a.id = $1::uuid;
`

const QListAssetsByProject = `--sql c72f1b58-9a04-4e36-8d2b-5e63a4c0d981
select id, project_id, job_id, kind, storage_key, mime, bytes, width, height, duration_seconds, segment_index, metadata, created_at
from assets
where project_id = $1::uuid
order by segment_index asc, created_at asc;
`
